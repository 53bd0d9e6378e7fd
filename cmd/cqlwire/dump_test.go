package main

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/cqlkit/cqlwire/pkg/protocol"
)

func readyFrame(stream int8) []byte {
	return []byte{0x82, 0x00, byte(stream), 0x02, 0x00, 0x00, 0x00, 0x00}
}

func errorFrame(stream int8, code int32, message string) []byte {
	body := protocol.NewBuffer(nil)
	body.AppendInt(code)
	body.AppendString(message)

	out := protocol.NewBuffer(nil)
	out.AppendByte(0x82)
	out.AppendByte(0x00)
	out.AppendByte(byte(stream))
	out.AppendByte(0x00)
	out.AppendUint(uint32(body.Remaining()))
	out.Append(body.Bytes())
	return out.Bytes()
}

func TestRunDump(t *testing.T) {
	var in bytes.Buffer
	in.Write(readyFrame(1))
	in.Write(errorFrame(2, 0x2000, "bad syntax"))

	var out bytes.Buffer
	if err := runDump(&in, &out, false, ""); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "[stream 1] READY") {
		t.Errorf("output missing READY line:\n%s", got)
	}
	if !strings.Contains(got, "[stream 2] ERROR code=0x2000") {
		t.Errorf("output missing ERROR line:\n%s", got)
	}
}

func TestRunDumpHexInput(t *testing.T) {
	encoded := hex.EncodeToString(readyFrame(5))
	// Whitespace in hex dumps is tolerated.
	in := strings.NewReader(encoded[:8] + " \n" + encoded[8:])

	var out bytes.Buffer
	if err := runDump(in, &out, true, ""); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[stream 5] READY") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunDumpBadHex(t *testing.T) {
	var out bytes.Buffer
	if err := runDump(strings.NewReader("zz"), &out, true, ""); err == nil {
		t.Error("runDump() accepted invalid hex")
	}
}

func TestSelectCompressor(t *testing.T) {
	c, err := selectCompressor("snappy")
	if err != nil || c == nil || c.Name() != "snappy" {
		t.Errorf("selectCompressor(snappy) = %v, %v", c, err)
	}
	c, err = selectCompressor("lz4")
	if err != nil || c == nil || c.Name() != "lz4" {
		t.Errorf("selectCompressor(lz4) = %v, %v", c, err)
	}
	c, err = selectCompressor("")
	if err != nil || c != nil {
		t.Errorf("selectCompressor(\"\") = %v, %v", c, err)
	}
	if _, err := selectCompressor("zstd"); err == nil {
		t.Error("selectCompressor() accepted an unknown algorithm")
	}
}

func TestDescribeEvent(t *testing.T) {
	// An event frame routes through NotifyEventListeners and prints with
	// the [event] prefix.
	body := protocol.NewBuffer(nil)
	body.AppendString("STATUS_CHANGE")
	body.AppendString("UP")
	body.AppendByte(4)
	body.Append([]byte{10, 0, 0, 1})
	body.AppendInt(9042)

	frame := protocol.NewBuffer(nil)
	frame.AppendByte(0x82)
	frame.AppendByte(0x00)
	frame.AppendByte(0xFF) // stream -1
	frame.AppendByte(0x0C)
	frame.AppendUint(uint32(body.Remaining()))
	frame.Append(body.Bytes())

	var out bytes.Buffer
	in := bytes.NewReader(frame.Bytes())
	if err := runDump(in, &out, false, ""); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[event] EVENT status_change UP 10.0.0.1:9042") {
		t.Errorf("output = %q", out.String())
	}
}
