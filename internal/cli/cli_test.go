package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ppiankov/guardrails/internal/audit"
	"github.com/ppiankov/guardrails/internal/config"
	"github.com/ppiankov/guardrails/internal/server"
)

func testCommand(stdin string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(stdin))
	return cmd, out
}

// useConfig points --config at a fresh file with the given content.
func useConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	configPath = path
	t.Cleanup(func() { configPath = "" })
	return path
}

func TestInitConfigWritesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	initOutput, initForce = path, false
	defer func() { initOutput, initForce = "", false }()

	cmd, out := testCommand("")
	if err := runInitConfig(cmd, nil); err != nil {
		t.Fatalf("runInitConfig: %v", err)
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("unexpected output %q", out.String())
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.Guardrails.Password["class_name"] != "PasswordValidator" {
		t.Errorf("password policy missing from generated config")
	}

	if err := runInitConfig(cmd, nil); err == nil {
		t.Fatal("expected refusal to overwrite without --force")
	}
	initForce = true
	if err := runInitConfig(cmd, nil); err != nil {
		t.Fatalf("--force: %v", err)
	}
}

func TestInitConfigStdout(t *testing.T) {
	initOutput = ""
	cmd, out := testCommand("")
	if err := runInitConfig(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if out.String() != config.DefaultConfigYAML() {
		t.Error("stdout output differs from the default config")
	}
}

func TestPasswordGenerateThenCheck(t *testing.T) {
	useConfig(t, "")
	passwordSize = 16
	defer func() { passwordSize = 0 }()

	cmd, out := testCommand("")
	if err := runPasswordGenerate(cmd, nil); err != nil {
		t.Fatalf("runPasswordGenerate: %v", err)
	}
	pw := strings.TrimSpace(out.String())
	if len(pw) != 16 {
		t.Fatalf("expected 16 characters, got %q", pw)
	}

	cmd, out = testCommand(pw + "\n")
	if err := runPasswordCheck(cmd, nil); err != nil {
		t.Fatalf("generated password rejected: %v", err)
	}
	if strings.TrimSpace(out.String()) != "OK" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestPasswordGenerateRejectsBadSize(t *testing.T) {
	useConfig(t, "")
	defer func() { passwordSize = 0 }()

	for size, want := range map[int]string{
		-2:      "Requested password length -2 must be positive",
		1 << 40: "is bigger than the maximum of 1024",
	} {
		passwordSize = size
		cmd, out := testCommand("")
		err := runPasswordGenerate(cmd, nil)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("size %d: error %v, want %q", size, err, want)
		}
		if out.Len() != 0 {
			t.Errorf("size %d: unexpected output %q", size, out.String())
		}
	}
}

func TestPasswordCheckJSON(t *testing.T) {
	useConfig(t, "")
	passwordJSON = true
	defer func() { passwordJSON = false }()

	cmd, out := testCommand("")
	err := runPasswordCheck(cmd, []string{"abcdefgh"})
	if !errors.Is(err, errPasswordRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	var outcome passwordOutcome
	if err := json.Unmarshal(out.Bytes(), &outcome); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if outcome.Valid || !strings.HasPrefix(outcome.Message, "Guardrail password violated:") {
		t.Errorf("unexpected outcome %+v", outcome)
	}
}

func TestPasswordCheckRejects(t *testing.T) {
	useConfig(t, "")

	cmd, out := testCommand("")
	err := runPasswordCheck(cmd, []string{"abcdefgh"})
	if !errors.Is(err, errPasswordRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if !strings.HasPrefix(out.String(), "REJECTED: Guardrail password violated:") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestPasswordCheckWarns(t *testing.T) {
	useConfig(t, `
guardrails:
  password:
    min_length_warn: 20
`)

	cmd, out := testCommand("")
	if err := runPasswordCheck(cmd, []string{"Xk9#mQ2$vL7!"}); err != nil {
		t.Fatalf("warn-only password should not fail: %v", err)
	}
	if !strings.HasPrefix(out.String(), "WARNING: ") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestThresholdsAgainstServer(t *testing.T) {
	path := useConfig(t, "")
	cfg, hash, err := config.LoadConfigWithHash(path)
	if err != nil {
		t.Fatal(err)
	}
	srv, err := server.New(cfg, hash, server.Options{ConfigPath: path})
	if err != nil {
		t.Fatal(err)
	}
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go srv.ServeOn(lis)
	defer func() {
		srv.GracefulStop()
		srv.Close()
	}()

	thresholdsAddr = lis.Addr().String()
	defer func() { thresholdsAddr = "" }()

	cmd, out := testCommand("")
	if err := runThresholdsSet(cmd, []string{"tables", "10", "20"}); err != nil {
		t.Fatalf("runThresholdsSet: %v", err)
	}
	if strings.TrimSpace(out.String()) != "tables: warn=10 fail=20" {
		t.Errorf("unexpected output %q", out.String())
	}

	if err := runThresholdsSet(cmd, []string{"tables", "30", "20"}); err == nil {
		t.Fatal("expected rejection of warn above fail")
	}
	if err := runThresholdsSet(cmd, []string{"tables", "ten", "20"}); err == nil {
		t.Fatal("expected parse error")
	}

	cmd, out = testCommand("")
	if err := runThresholdsList(cmd, nil); err != nil {
		t.Fatalf("runThresholdsList: %v", err)
	}
	found := false
	for _, line := range strings.Split(out.String(), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 3 && fields[0] == "tables" {
			found = fields[1] == "10" && fields[2] == "20"
		}
	}
	if !found {
		t.Errorf("tables row not listed:\n%s", out.String())
	}
}

func TestAuditVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log, err := audit.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, kind := range []string{"warned", "failed"} {
		if err := log.Record(audit.AuditEntry{Guardrail: "tables", Kind: kind, Message: "m"}); err != nil {
			t.Fatal(err)
		}
	}
	log.Close()

	cmd, out := testCommand("")
	if err := runAuditVerify(cmd, []string{path}); err != nil {
		t.Fatalf("runAuditVerify: %v", err)
	}
	if strings.TrimSpace(out.String()) != "OK: 2 entries verified" {
		t.Errorf("unexpected output %q", out.String())
	}

	data, _ := os.ReadFile(path)
	tampered := bytes.Replace(data, []byte(`"kind":"warned"`), []byte(`"kind":"failed"`), 1)
	if err := os.WriteFile(path, tampered, 0644); err != nil {
		t.Fatal(err)
	}
	if err := runAuditVerify(cmd, []string{path}); err == nil {
		t.Fatal("expected tampered log to fail verification")
	}
}

func TestVersion(t *testing.T) {
	cmd, out := testCommand("")
	versionCmd.Run(cmd, nil)
	if !strings.Contains(out.String(), `"name": "guardrails"`) {
		t.Errorf("unexpected output %q", out.String())
	}
}
