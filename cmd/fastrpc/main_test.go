package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pierrec/lz4/v4"
)

// Call("test", null) with the magic header
var testCall = []byte{0xCA, 0x11, 0x02, 0x00, 0x68, 4, 't', 'e', 's', 't', 0x60}

const testCallBase64 = "yhECAGgEdGVzdGA="

func execute(t *testing.T, stdin []byte, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("FASTRPC_CONFIG", "")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDecode_Argument(t *testing.T) {
	out, _, err := execute(t, nil, "decode", testCallBase64)
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if out != "Call(\"test\", null)\n" {
		t.Errorf("output = %q", out)
	}
}

func TestDecode_Stdin(t *testing.T) {
	out, _, err := execute(t, []byte(testCallBase64+"\n"), "decode", "--format", "json")
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %q", out)
	}
	if got["type"] != "call" || got["method"] != "test" {
		t.Errorf("output = %v", got)
	}
}

func TestDecode_RawCompressed(t *testing.T) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(testCall); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, buf.Bytes(), "decode", "--raw", "--format", "cbor-diag")
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if !strings.Contains(out, `"method"`) || !strings.Contains(out, `"test"`) {
		t.Errorf("output = %q", out)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		stdin   []byte
		wantErr string
	}{
		{"invalid_base64", []string{"decode", "yhEC*GgE"}, nil, "invalid character"},
		{"missing_magic", []string{"decode", "--require-magic", base64.StdEncoding.EncodeToString(testCall[4:])}, nil, "magic"},
		{"empty_stdin", []string{"decode"}, []byte("  \n"), "no payload"},
		{"bad_format", []string{"decode", "--format", "xml", testCallBase64}, nil, "output.format"},
		{"bad_log_level", []string{"decode", "--log-level", "loud", testCallBase64}, nil, "log level"},
		{"too_many_args", []string{"decode", "a", "b"}, nil, "accepts at most 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.stdin, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestDecode_UnknownMethod(t *testing.T) {
	_, stderr, err := execute(t, nil, "decode", "--known", "user.get", "--log-level", "warn", testCallBase64)
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if !strings.Contains(stderr, "call to unknown method") {
		t.Errorf("stderr = %q, want warning", stderr)
	}

	_, _, err = execute(t, nil, "decode", "--known", "user.get", "--fail-unknown", testCallBase64)
	if err == nil || !strings.Contains(err.Error(), `unknown method "test"`) {
		t.Errorf("error = %v, want unknown method", err)
	}

	if _, _, err := execute(t, nil, "decode", "--known", "test", "--fail-unknown", testCallBase64); err != nil {
		t.Errorf("known method error = %v", err)
	}
}

func TestDecode_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fastrpc.yaml")
	content := "output:\n  format: json\n  indent: \"\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, nil, "--config", path, "decode", testCallBase64)
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("output = %q, want JSON", out)
	}

	// flags override the file
	out, _, err = execute(t, nil, "--config", path, "decode", "--format", "text", testCallBase64)
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if !strings.HasPrefix(out, "Call(") {
		t.Errorf("output = %q, want text", out)
	}
}

func TestMethods(t *testing.T) {
	dir := t.TempDir()
	proto := `syntax = "proto3";
package demo;
message Req {}
service Test {
  rpc Echo(Req) returns (Req);
  rpc Ping(Req) returns (Req);
}
`
	if err := os.WriteFile(filepath.Join(dir, "demo.proto"), []byte(proto), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, nil, "methods", dir)
	if err != nil {
		t.Fatalf("methods error = %v", err)
	}
	if out != "demo.Test.Echo\ndemo.Test.Ping\n" {
		t.Errorf("output = %q", out)
	}

	out, _, err = execute(t, nil, "methods", "-v", dir)
	if err != nil {
		t.Fatalf("methods error = %v", err)
	}
	if !strings.Contains(out, "demo.Test.Echo(demo.Req) returns (demo.Req)") {
		t.Errorf("verbose output = %q", out)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, nil, "version", "--short")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("output = %q, want %q", out, version)
	}
}
