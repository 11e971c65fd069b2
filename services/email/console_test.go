package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	appfs "github.com/ChukwumaKingsley/smart-school-forked/fs"
	logsvc "github.com/ChukwumaKingsley/smart-school-forked/services/logger"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := &core.Config{AppName: "Academia", TestMode: true, FrontendBaseURL: "http://front.test"}
	logger := logsvc.NewNopLogger()
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, logger)

	svc := NewConsoleServiceMock(conf, logger)
	ResetSentMessages()

	svc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: "Chidi", Address: "chidi@uni.edu"}},
			Subject:      "CSC301: enrollment approved",
			TemplateName: "enrollment_approved",
			TemplateData: map[string]string{"Name": "Chidi", "CourseCode": "CSC301", "CourseTitle": "Algorithms"},
		},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "dropped"},
		&core.EmailMessage{To: []mail.Address{{Address: "x@uni.edu"}}, Subject: "empty"},
	)

	sent := LastSentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "Hello Chidi")
	assert.Contains(t, sent[0].TextContent, "http://front.test/courses/CSC301")
	assert.Contains(t, sent[0].HTMLContent, "Algorithms")
}
