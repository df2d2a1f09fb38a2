package logger

import (
	"net/http"
	"testing"
)

func TestMaskAuthorization(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "Bearer abcdef123456", want: "Bearer ****3456"},
		{in: "bearer abcdef123456", want: "Bearer ****3456"},
		{in: "Bearer abc", want: "Bearer ****abc"},
		{in: "rawtoken1234", want: "****1234"},
	}
	for _, tc := range cases {
		if got := MaskAuthorization(tc.in); got != tc.want {
			t.Fatalf("MaskAuthorization(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer abcdef123456")
	headers.Set("Cookie", "session=abcdef123456")
	headers.Set("Content-Type", "application/json")

	masked := MaskHeaders(headers)
	if masked["Authorization"] != "Bearer ****3456" {
		t.Fatalf("authorization = %q", masked["Authorization"])
	}
	if masked["Cookie"] != "****3456" {
		t.Fatalf("cookie = %q", masked["Cookie"])
	}
	if masked["Content-Type"] != "application/json" {
		t.Fatalf("content type = %q", masked["Content-Type"])
	}
}
