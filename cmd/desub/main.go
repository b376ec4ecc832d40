package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	desub "github.com/archivete/desub-go"
	"github.com/archivete/desub-go/internal/log"
)

var (
	specVersion uint64
	chainName   string
	lenient     bool
	ss58Prefix  uint64

	logger = log.Default()
)

func prettyPrint(buf []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		logger.Errorf("JSON pretty-print error: %s", err)
		return string(buf)
	}
	return pretty.String()
}

func parseHexExtrinsic(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	return hex.DecodeString(s)
}

func decode(cmd *cobra.Command, args []string) {
	metadataPath := args[0]
	extrinsicHex := args[1]

	data, err := os.ReadFile(metadataPath)
	if err != nil {
		logger.Errorf("error reading metadata file %s: %s", metadataPath, err)
		os.Exit(1)
	}

	extrinsicBytes, err := parseHexExtrinsic(extrinsicHex)
	if err != nil {
		logger.Errorf("error parsing extrinsic hex: %s", err)
		os.Exit(1)
	}

	d := desub.New(desub.Options{
		Chain:   desub.CustomChain(chainName),
		Lenient: lenient,
	})
	if err := d.RegisterVersion(uint32(specVersion), data); err != nil {
		logger.Errorf("error registering metadata for spec %d: %s", specVersion, err)
		os.Exit(2)
	}

	ev, err := d.DecodeExtrinsic(uint32(specVersion), extrinsicBytes)
	if err != nil {
		logger.Errorf("decode failed: %s", err)
		os.Exit(2)
	}

	out, err := ev.ToJSON(desub.RenderOptions{Ss58Prefix: desub.Ss58Prefix(ss58Prefix)})
	if err != nil {
		logger.Errorf("error rendering output: %s", err)
		os.Exit(2)
	}
	fmt.Println(prettyPrint(out))
}

func inspect(cmd *cobra.Command, args []string) {
	metadataPath := args[0]
	data, err := os.ReadFile(metadataPath)
	if err != nil {
		logger.Errorf("error reading metadata file %s: %s", metadataPath, err)
		os.Exit(1)
	}

	meta, err := desub.DecodeMetadata(data)
	if err != nil {
		logger.Errorf("error parsing metadata: %s", err)
		os.Exit(2)
	}

	fmt.Printf("metadata version: %d\n", meta.Version)
	fmt.Printf("pallets: %d\n", len(meta.Pallets))
	for i := 0; i < 256; i++ {
		p, ok := meta.Pallets[uint8(i)]
		if !ok {
			continue
		}
		callCount := 0
		if p.Calls != nil {
			callCount = len(p.Calls.Variants)
		}
		fmt.Printf("  [%3d] %-24s calls=%d\n", p.Index, p.Name, callCount)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "desub",
		Short: "A Substrate extrinsic decoder",
		Long:  "desub decodes Substrate-style extrinsics against versioned runtime metadata",
	}

	decodeCmd := &cobra.Command{
		Use:   "decode <metadata.bin> <0x...extrinsic>",
		Short: "Decode a single extrinsic",
		Args:  cobra.ExactArgs(2),
		Run:   decode,
	}
	decodeCmd.Flags().Uint64VarP(&specVersion, "spec", "s", 0, "runtime spec version the metadata was registered for")
	decodeCmd.Flags().StringVarP(&chainName, "chain", "c", "custom", "chain name for legacy type resolution")
	decodeCmd.Flags().BoolVarP(&lenient, "lenient", "l", false, "fall back to opaque bytes on unresolved legacy types")
	decodeCmd.Flags().Uint64Var(&ss58Prefix, "ss58-prefix", uint64(desub.Ss58Generic), "network prefix for ss58 address rendering")

	inspectCmd := &cobra.Command{
		Use:   "inspect <metadata.bin>",
		Short: "Print a metadata blob's pallet/call table",
		Args:  cobra.ExactArgs(1),
		Run:   inspect,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("desub 0.1.0")
		},
	}

	rootCmd.AddCommand(decodeCmd, inspectCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
