package course

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

// RegNumColumn is the CSV header holding registration numbers.
const RegNumColumn = "REG. NO."

func csvError(msg string) error {
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: "file", Error: msg})
}

// parseRegNums reads the registration numbers of a class list.
// Blank cells are skipped; duplicates are kept once.
func parseRegNums(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, csvError("empty file")
		}
		return nil, csvError(fmt.Sprintf("bad csv: %v", err))
	}
	col := -1
	for i, h := range hdr {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), RegNumColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, csvError("missing column: " + RegNumColumn)
	}

	seen := make(map[string]bool)
	var regNums []string
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(fmt.Sprintf("bad csv: %v", err))
		}
		if col >= len(rec) {
			return nil, csvError(fmt.Sprintf("line %d: missing %s", line, RegNumColumn))
		}
		regNum := strings.TrimSpace(rec[col])
		if regNum == "" || seen[regNum] {
			continue
		}
		seen[regNum] = true
		regNums = append(regNums, regNum)
	}
	if len(regNums) == 0 {
		return nil, csvError("no registration numbers found")
	}
	return regNums, nil
}
