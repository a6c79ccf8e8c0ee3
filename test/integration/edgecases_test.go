package integration

import (
	"bytes"
	"net/http"
	"testing"
)

func TestIntegration_ValidationErrors(t *testing.T) {
	waitReady(t)
	u := baseURL()

	cases := []struct {
		name, body, ctype string
		want              int
	}{
		{"missing_name", `{"price":1}`, "application/json", http.StatusBadRequest},
		{"negative_price", `{"name":"e1","price":-1}`, "application/json", http.StatusBadRequest},
		{"unknown_field", `{"name":"e2","stock":1}`, "application/json", http.StatusBadRequest},
		{"malformed_json", `{"name":"e3",`, "application/json", http.StatusBadRequest},
		{"wrong_content_type", `{"name":"e4"}`, "text/plain", http.StatusUnsupportedMediaType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodPost, u+"/products", bytes.NewBufferString(tc.body))
			r.Header.Set("Content-Type", tc.ctype)
			resp, err := http.DefaultClient.Do(r)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, resp.StatusCode)
			}
		})
	}
}
