package xcrawler

// userAgent identifies the client to the API.
const userAgent = "go-xcrawler/1.0"

// apiHeaders returns the headers sent with every v2 REST request.
func apiHeaders(bearerToken string) map[string]string {
	h := map[string]string{
		"accept":          "application/json",
		"accept-encoding": "gzip, deflate, br",
		"user-agent":      userAgent,
	}
	if bearerToken != "" {
		h["authorization"] = "Bearer " + bearerToken
	}
	return h
}

// apiHeaderOrder keeps the header order stable for the stealth client.
var apiHeaderOrder = []string{
	"authorization",
	"user-agent",
	"accept",
	"accept-encoding",
}
