package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "simple id", id: "row-1", wantErr: false},
		{name: "uuid style", id: "b2f3c8e1-77aa-4f0e-9c1d-0a9f2f0c1d2e", wantErr: false},
		{name: "unicode label", id: "αβγ", wantErr: false},
		{name: "empty", id: "", wantErr: true},
		{name: "control character", id: "row\x01", wantErr: true},
		{name: "null byte", id: "row\x00", wantErr: true},
		{name: "too long", id: strings.Repeat("a", 257), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateField(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		wantErr  bool
		wantCode Code
	}{
		{name: "simple field", field: "hazard_ratio", wantErr: false},
		{name: "dotted field", field: "ci.lower", wantErr: false},
		{name: "empty field", field: "", wantErr: true, wantCode: ErrCodeMissingField},
		{name: "control characters", field: "a\x00b", wantErr: true, wantCode: ErrCodeInvalidColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateField(tt.field)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateField(%q) error = %v, wantErr %v", tt.field, err, tt.wantErr)
			}
			if tt.wantErr && GetCode(err) != tt.wantCode {
				t.Errorf("GetCode() = %v, want %v", GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		name    string
		color   string
		wantErr bool
	}{
		{name: "hex short", color: "#fff", wantErr: false},
		{name: "hex long", color: "#1a2b3c", wantErr: false},
		{name: "hex with alpha", color: "#1a2b3c80", wantErr: false},
		{name: "rgb function", color: "rgb(10, 20, 30)", wantErr: false},
		{name: "rgba function", color: "rgba(10, 20, 30, 0.5)", wantErr: false},
		{name: "keyword", color: "steelblue", wantErr: false},
		{name: "none", color: "none", wantErr: false},
		{name: "transparent", color: "transparent", wantErr: false},
		{name: "empty", color: "", wantErr: true},
		{name: "markup injection", color: "\"><script>", wantErr: true},
		{name: "url reference", color: "url(#gradient)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColor(tt.color)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColor(%q) error = %v, wantErr %v", tt.color, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDataURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantErr bool
	}{
		{name: "png data uri", uri: "data:image/png;base64,iVBORw0KGgo=", wantErr: false},
		{name: "svg data uri", uri: "data:image/svg+xml;base64,PHN2Zz48L3N2Zz4=", wantErr: false},
		{name: "http url", uri: "https://example.com/img.png", wantErr: true},
		{name: "relative path", uri: "./img.png", wantErr: true},
		{name: "empty", uri: "", wantErr: true},
		{name: "quote injection", uri: "data:image/png;base64,\"><x>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDataURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDataURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "relative path", path: "out/plot.svg", wantErr: false},
		{name: "absolute path", path: "/tmp/plot.svg", wantErr: false},
		{name: "empty", path: "", wantErr: true},
		{name: "null byte", path: "plot\x00.svg", wantErr: true},
		{name: "too long", path: strings.Repeat("a/", 300), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
