package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cqlkit/cqlwire/pkg/compress"
	"github.com/cqlkit/cqlwire/pkg/protocol"
)

// printHandler prints each dispatched response with its routing.
type printHandler struct {
	out io.Writer
}

func (h *printHandler) CompleteRequest(streamID int8, resp protocol.Response) {
	fmt.Fprintf(h.out, "[stream %d] %s\n", streamID, describe(resp))
}

func (h *printHandler) NotifyEventListeners(resp protocol.Response) {
	fmt.Fprintf(h.out, "[event] %s\n", describe(resp))
}

func dumpCmd() *cobra.Command {
	var (
		hexInput   bool
		compressor string
	)

	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "Decode a captured server byte stream",
		Long: `Decode a server-to-client byte stream captured from a CQL connection
and print every frame. Reads from stdin when no file is given.

Examples:
  cqlwire dump capture.bin
  xxd -p capture.bin | cqlwire dump --hex
  cqlwire dump --compressor=snappy capture.bin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runDump(in, cmd.OutOrStdout(), hexInput, compressor)
		},
	}

	cmd.Flags().BoolVar(&hexInput, "hex", false, "Input is hex-encoded")
	cmd.Flags().StringVar(&compressor, "compressor", "", "Body compressor: snappy or lz4")

	return cmd
}

func runDump(in io.Reader, out io.Writer, hexInput bool, compressor string) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	if hexInput {
		clean := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
				return -1
			}
			return r
		}, string(data))
		if data, err = hex.DecodeString(clean); err != nil {
			return fmt.Errorf("decode hex input: %w", err)
		}
	}

	var opts []protocol.DecoderOption
	c, err := selectCompressor(compressor)
	if err != nil {
		return err
	}
	if c != nil {
		opts = append(opts, protocol.WithDecoderCompressor(c))
	}

	decoder := protocol.NewFrameDecoder(&printHandler{out: out}, opts...)
	return decoder.Feed(data)
}

func selectCompressor(name string) (compress.Compressor, error) {
	switch name {
	case "":
		return nil, nil
	case "snappy":
		return compress.Snappy{}, nil
	case "lz4":
		return compress.LZ4{}, nil
	default:
		return nil, fmt.Errorf("unknown compressor %q (want snappy or lz4)", name)
	}
}
