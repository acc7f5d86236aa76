package panel

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// The panel embeds its CSRF token in every page:
//
//	<meta name="forgery_protection_token" id="..." content="3b55c0fb...">
const forgeryTokenMeta = "forgery_protection_token"

// ExtractForgeryToken scans an HTML page for the forgery protection token
// meta tag and returns its content, or "" when the page carries none.
func ExtractForgeryToken(r io.Reader) string {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "meta" || !hasAttr {
				continue
			}
			var isToken bool
			var content string
			for {
				key, val, more := z.TagAttr()
				switch string(key) {
				case "name":
					isToken = string(val) == forgeryTokenMeta
				case "content":
					content = string(val)
				}
				if !more {
					break
				}
			}
			if isToken {
				return content
			}
		}
	}
}

// Tags the panel markup never closes. They must not affect element depth
// while collecting msgbox text.
var voidTags = map[string]bool{
	"meta":  true,
	"input": true,
	"br":    true,
	"link":  true,
	"img":   true,
	"hr":    true,
}

// ExtractErrorMessage pulls the text out of the first
// <div class="msgbox msg-error"> block on an HTML error page.
// Returns "" when the page carries no error box.
func ExtractErrorMessage(r io.Reader) string {
	z := html.NewTokenizer(r)
	depth := 0
	var parts []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if depth > 0 {
				if !voidTags[tag] {
					depth++
				}
				continue
			}
			if tag != "div" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "class" && strings.Contains(string(val), "msg-error") {
					depth = 1
				}
				if !more {
					break
				}
			}
		case html.EndTagToken:
			if depth > 0 {
				depth--
				if depth == 0 && len(parts) > 0 {
					return strings.Join(parts, " ")
				}
			}
		case html.TextToken:
			if depth > 0 {
				if text := strings.TrimSpace(string(z.Text())); text != "" {
					parts = append(parts, text)
				}
			}
		}
	}
}

// isLoginPage reports whether a response body is the panel's login page,
// which is what an expired session gets redirected to.
func isLoginPage(body []byte) bool {
	return bytes.Contains(body, []byte("login_up.php3")) ||
		bytes.Contains(body, []byte(`name="login_name"`))
}

// looksLikeHTML reports whether a body is markup rather than JSON.
func looksLikeHTML(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '<'
}
