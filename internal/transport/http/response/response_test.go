package response

import (
	"encoding/json"
	"testing"
)

func TestEnvelope(t *testing.T) {
	b, _ := json.Marshal(OK(nil))
	if string(b) != `{"code":0,"msg":"OK","data":{}}` {
		t.Fatalf("OK(nil) = %s", b)
	}
	b, _ = json.Marshal(Error(CodeConflict, ""))
	if string(b) != `{"code":409,"msg":"Conflict","data":{}}` {
		t.Fatalf("Error = %s", b)
	}
	b, _ = json.Marshal(Fail(CodeUnauthorized, "account_locked", "locked"))
	if string(b) != `{"code":401,"msg":"locked","reason":"account_locked","data":{}}` {
		t.Fatalf("Fail = %s", b)
	}
}
