package util

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		raw  string
		want uint
		ok   bool
	}{
		{"valid", "42", 42, true},
		{"one", "1", 1, true},
		{"zero rejected", "0", 0, false},
		{"letters rejected", "abc", 0, false},
		{"negative rejected", "-5", 0, false},
		{"float rejected", "3.14", 0, false},
		{"empty rejected", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "id", Value: tt.raw}}

			got, ok := ParseID(c, "id")
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseID(%q) = (%d, %v), want (%d, %v)", tt.raw, got, ok, tt.want, tt.ok)
			}
			if !tt.ok && w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}
