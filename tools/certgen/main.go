// Package main generates a development Certificate Authority and a server
// certificate for the storefront API, writing them under the "certs"
// directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/CropCircle/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	flag.Parse()

	if err := run(*dir, strings.Split(*hosts, ",")); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Certificates generated into %s\n", *dir)
}

// run writes ca.crt, ca.key, server.crt and server.key into dir.
func run(dir string, hosts []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	ca, err := certgen.NewAuthority("CropCircle Dev CA", 10*365*24*time.Hour)
	if err != nil {
		return err
	}
	caCert, caKey, err := ca.PEM()
	if err != nil {
		return err
	}
	if err := writeCertAndKey(dir, "ca", caCert, caKey); err != nil {
		return err
	}

	var names []string
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}
	serverCert, serverKey, err := ca.IssueServer(names, 365*24*time.Hour)
	if err != nil {
		return err
	}
	return writeCertAndKey(dir, "server", serverCert, serverKey)
}

// writeCertAndKey writes <name>.crt and <name>.key; the key is readable by
// the owner only.
func writeCertAndKey(dir, name string, certPEM, keyPEM []byte) error {
	if err := os.WriteFile(filepath.Join(dir, name+".crt"), certPEM, 0o644); err != nil {
		return fmt.Errorf("write %s.crt: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".key"), keyPEM, 0o600); err != nil {
		return fmt.Errorf("write %s.key: %w", name, err)
	}
	return nil
}
