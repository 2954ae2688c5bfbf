// Command keygen runs the single-party Groth16 dev setup over the
// transaction circuit and writes the resulting keys to ./files, in both
// raw compressed and hex forms.
package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vortexlabs/vortex-core/pkg/logging"
	"github.com/vortexlabs/vortex-core/pkg/prover"
)

const outputDir = "files"

func main() {
	if len(os.Args) < 2 || os.Args[1] != "keygen" {
		printUsage()
		os.Exit(1)
	}

	log := logging.New()

	log.Warn().Msg("================================================================")
	log.Warn().Msg("Single-party setup (1-of-1 trust assumption)")
	log.Warn().Msg("DO NOT use these keys in production.")
	log.Warn().Msg("================================================================")

	if err := run(); err != nil {
		log.Error().Err(err).Msg("keygen failed")
		os.Exit(1)
	}

	log.Info().Str("dir", outputDir).Msg("keygen complete")
}

func run() error {
	pk, vk, err := prover.Setup()
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeKey(pk, "proving_key"); err != nil {
		return err
	}
	if err := writeKey(vk, "verification_key"); err != nil {
		return err
	}
	return nil
}

// writeKey serializes obj's canonical compressed encoding to both
// files/<name>.bin and files/<name>.hex.
func writeKey(obj io.WriterTo, name string) error {
	var buf bytes.Buffer
	if _, err := obj.WriteTo(&buf); err != nil {
		return fmt.Errorf("serialize %s: %w", name, err)
	}

	binPath := filepath.Join(outputDir, name+".bin")
	if err := os.WriteFile(binPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", binPath, err)
	}

	hexPath := filepath.Join(outputDir, name+".hex")
	if err := os.WriteFile(hexPath, []byte(hex.EncodeToString(buf.Bytes())), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", hexPath, err)
	}

	return nil
}

func printUsage() {
	fmt.Println(`Usage:
  go run ./cmd/keygen keygen     Run the single-party Groth16 dev setup and
                                  write proving_key.{bin,hex} and
                                  verification_key.{bin,hex} to ./files/.`)
}
