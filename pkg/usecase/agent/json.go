package agent

import (
	"strings"
)

// cleanJSONResponse trims whitespace and a markdown code fence wrapping the
// whole response. Anything else is left for the JSON decoder to reject.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	if !strings.HasPrefix(response, "```") || len(response) < 6 || !strings.HasSuffix(response, "```") {
		return response
	}

	body := response[3 : len(response)-3]
	// drop the language tag on the opening line
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = strings.TrimPrefix(body, "json")
	}
	return strings.TrimSpace(body)
}
