package upstream

import (
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// toUTF8 returns body as UTF-8. A missing charset or the ISO-8859-1 transport
// default is taken to mean UTF-8; any other declared charset is decoded
func toUTF8(contentType string, body []byte) ([]byte, string) {
	cs := ""
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		cs = strings.ToLower(strings.TrimSpace(params["charset"]))
	}
	switch cs {
	case "", "utf-8", "utf8", "iso-8859-1", "latin1", "us-ascii":
		return body, "utf-8"
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return body, "utf-8"
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body, "utf-8"
	}
	return out, cs
}
