package mail

import (
	"strings"
	"testing"
)

func TestRenderVerification(t *testing.T) {
	html, err := renderVerification("482913", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, ">482913</span>") {
		t.Errorf("code missing from body")
	}
	if !strings.Contains(html, "expires in 10 minutes") {
		t.Errorf("expiry missing from body")
	}
}

func TestRenderVerification_EscapesCode(t *testing.T) {
	html, err := renderVerification("<b>1</b>", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(html, "<b>1</b>") {
		t.Errorf("code must be escaped")
	}
}
