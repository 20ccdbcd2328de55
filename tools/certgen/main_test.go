package main

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/atinyakov/CropCircle/internal/certgen"
)

func TestRun_WritesTrustedServerPair(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	if err := run(dir, []string{"localhost", " 127.0.0.1 ", ""}); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"ca.crt", "ca.key", "server.crt", "server.key"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	info, err := os.Stat(filepath.Join(dir, "server.key"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("server.key perm = %o; want 600", perm)
	}

	pair, err := tls.LoadX509KeyPair(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"))
	if err != nil {
		t.Fatalf("LoadX509KeyPair: %v", err)
	}
	if len(pair.Leaf.IPAddresses) != 1 || len(pair.Leaf.DNSNames) != 1 {
		t.Errorf("unexpected SANs: dns=%v ip=%v", pair.Leaf.DNSNames, pair.Leaf.IPAddresses)
	}

	ca, err := certgen.LoadAuthority(filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key"))
	if err != nil {
		t.Fatalf("LoadAuthority: %v", err)
	}
	if err := pair.Leaf.CheckSignatureFrom(ca.Cert); err != nil {
		t.Errorf("server cert not signed by generated CA: %v", err)
	}
}

func TestRun_NoHosts(t *testing.T) {
	if err := run(t.TempDir(), []string{" "}); err == nil {
		t.Error("expected error without hosts")
	}
}
