package upstream

// DefaultHeaders mimic the desktop web client. Accept-Encoding is left to the
// transport so gzip bodies are decompressed transparently
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36",
		"Accept":          "application/json,text/plain,*/*",
		"Accept-Language": "zh-TW,zh;q=0.9,en;q=0.8",
		"Referer":         "https://auto.8891.com.tw/",
		"Sec-Fetch-Dest":  "empty",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "same-site",
	}
}
