package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CurlCommand pairs a label with a runnable command line.
type CurlCommand struct {
	Label   string `json:"label"`
	Method  string `json:"method"`
	Command string `json:"command"`
}

// CurlCommands builds one curl invocation per enabled verb. The POST and PUT
// payloads reuse the resource template verbatim; its macro strings resolve
// server-side, so the commands work as-is.
func CurlCommands(res Resource, baseURL string) []CurlCommand {
	url := res.URL(baseURL)
	payload := samplePayload(res.Template)

	var commands []CurlCommand
	if res.AllowGet {
		commands = append(commands, CurlCommand{
			Label:   "List all records",
			Method:  "GET",
			Command: fmt.Sprintf("curl %s", url),
		})
	}
	if res.AllowGetByID {
		commands = append(commands, CurlCommand{
			Label:   "Get one record",
			Method:  "GET",
			Command: fmt.Sprintf("curl %s/1", url),
		})
	}
	if res.AllowPost {
		commands = append(commands, CurlCommand{
			Label:  "Create a record",
			Method: "POST",
			Command: fmt.Sprintf("curl -X POST -H 'Content-Type: application/json' -d '%s' %s",
				payload, url),
		})
	}
	if res.AllowPut {
		commands = append(commands, CurlCommand{
			Label:  "Replace a record",
			Method: "PUT",
			Command: fmt.Sprintf("curl -X PUT -H 'Content-Type: application/json' -d '%s' %s/1",
				payload, url),
		})
	}
	if res.AllowDelete {
		commands = append(commands, CurlCommand{
			Label:   "Delete a record",
			Method:  "DELETE",
			Command: fmt.Sprintf("curl -X DELETE %s/1", url),
		})
	}
	return commands
}

// samplePayload compacts the template into a single-line JSON body.
func samplePayload(template []byte) string {
	if len(template) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, template); err != nil {
		return "{}"
	}
	return buf.String()
}
