package course

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseRegNums(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		want    []string
		wantErr bool
	}{
		{name: "empty file", csv: "", wantErr: true},
		{name: "missing column", csv: "NAME,LEVEL\nJohn,300\n", wantErr: true},
		{name: "no rows", csv: "S/N,REG. NO.\n", wantErr: true},
		{
			name: "valid",
			csv:  "S/N,NAME,REG. NO.\n1,John,20191234567\n2,Jane, 20191234568\n",
			want: []string{"20191234567", "20191234568"},
		},
		{
			name: "blank cells and duplicates skipped",
			csv:  "REG. NO.,NAME\n20191234567,John\n,Nobody\n20191234567,John again\n",
			want: []string{"20191234567"},
		},
		{
			name: "header case and BOM",
			csv:  "\ufeffreg. no.\n20191234567\n",
			want: []string{"20191234567"},
		},
		{name: "short row", csv: "NAME,REG. NO.\nJohn\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRegNums(strings.NewReader(tt.csv))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
