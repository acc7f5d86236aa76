package panel_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pleskutil/pleskfm/panel"
)

func TestExtractForgeryToken(t *testing.T) {
	t.Run("standard meta tag", func(t *testing.T) {
		page := `<html><head>
			<meta charset="utf-8">
			<meta name="forgery_protection_token" id="forgery_protection_token" content="3b55c0fb579094ccdf0d1e84ae183062">
			<title>Plesk</title>
		</head><body></body></html>`

		token := panel.ExtractForgeryToken(strings.NewReader(page))
		assert.Equal(t, "3b55c0fb579094ccdf0d1e84ae183062", token)
	})

	t.Run("self closing meta tag", func(t *testing.T) {
		page := `<head><meta name="forgery_protection_token" content="abc123"/></head>`

		token := panel.ExtractForgeryToken(strings.NewReader(page))
		assert.Equal(t, "abc123", token)
	})

	t.Run("content attribute before name", func(t *testing.T) {
		page := `<head><meta content="tok" name="forgery_protection_token"></head>`

		token := panel.ExtractForgeryToken(strings.NewReader(page))
		assert.Equal(t, "tok", token)
	})

	t.Run("other meta tags ignored", func(t *testing.T) {
		page := `<head><meta name="viewport" content="width=device-width"></head>`

		token := panel.ExtractForgeryToken(strings.NewReader(page))
		assert.Empty(t, token)
	})

	t.Run("no meta tags", func(t *testing.T) {
		token := panel.ExtractForgeryToken(strings.NewReader(`<html><body>login</body></html>`))
		assert.Empty(t, token)
	})
}

func TestExtractErrorMessage(t *testing.T) {
	t.Run("simple error box", func(t *testing.T) {
		page := `<body><div class="msgbox msg-error">Access denied</div></body>`

		msg := panel.ExtractErrorMessage(strings.NewReader(page))
		assert.Equal(t, "Access denied", msg)
	})

	t.Run("nested markup inside error box", func(t *testing.T) {
		page := `<body>
			<div class="content">
				<div class="msgbox msg-error">
					<div class="msg-content">Unable to open file:<br>
					<span>filename.txt does not exist</span></div>
				</div>
			</div>
			<div class="footer">Plesk</div>
		</body>`

		msg := panel.ExtractErrorMessage(strings.NewReader(page))
		assert.Equal(t, "Unable to open file: filename.txt does not exist", msg)
	})

	t.Run("void tags do not break nesting", func(t *testing.T) {
		page := `<div class="msgbox msg-error">first<br><img src="x">second<hr></div><div>after</div>`

		msg := panel.ExtractErrorMessage(strings.NewReader(page))
		assert.Equal(t, "first second", msg)
	})

	t.Run("text outside error box ignored", func(t *testing.T) {
		page := `<body><div class="msgbox msg-info">all good</div><p>footer</p></body>`

		msg := panel.ExtractErrorMessage(strings.NewReader(page))
		assert.Empty(t, msg)
	})

	t.Run("empty page", func(t *testing.T) {
		msg := panel.ExtractErrorMessage(strings.NewReader(""))
		assert.Empty(t, msg)
	})
}
