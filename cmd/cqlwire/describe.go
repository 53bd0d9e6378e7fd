package main

import (
	"fmt"
	"strings"

	"github.com/cqlkit/cqlwire/pkg/protocol"
)

// describe renders one decoded response as a single line for the dump and
// proxy outputs.
func describe(resp protocol.Response) string {
	switch r := resp.(type) {
	case *protocol.ReadyResponse:
		return "READY"
	case *protocol.AuthenticateResponse:
		return fmt.Sprintf("AUTHENTICATE mechanism=%s", r.Mechanism)
	case *protocol.SupportedResponse:
		parts := make([]string, 0, len(r.Options))
		for k, v := range r.Options {
			parts = append(parts, fmt.Sprintf("%s=%s", k, strings.Join(v, ",")))
		}
		return "SUPPORTED " + strings.Join(parts, " ")
	case *protocol.DetailedErrorResponse:
		return fmt.Sprintf("ERROR code=0x%04x message=%q details=%v", int32(r.Code), r.Message, r.Details)
	case *protocol.ErrorResponse:
		return fmt.Sprintf("ERROR code=0x%04x message=%q", int32(r.Code), r.Message)
	case *protocol.VoidResult:
		return "RESULT void"
	case *protocol.SetKeyspaceResult:
		return fmt.Sprintf("RESULT set_keyspace %s", r.Keyspace)
	case *protocol.SchemaChangeResult:
		return fmt.Sprintf("RESULT schema_change %s %s.%s", r.Change, r.Keyspace, r.Table)
	case *protocol.PreparedResult:
		return fmt.Sprintf("RESULT prepared id=%x params=%d", r.ID, len(r.Metadata.Columns))
	case *protocol.RowsResult:
		return fmt.Sprintf("RESULT rows columns=%d rows=%d", len(r.Metadata.Columns), len(r.Rows))
	case *protocol.RawRowsResult:
		return fmt.Sprintf("RESULT rows (no metadata) raw=%d bytes", len(r.Raw))
	case *protocol.AuthChallengeResponse:
		return fmt.Sprintf("AUTH_CHALLENGE token=%d bytes", len(r.Token))
	case *protocol.AuthSuccessResponse:
		return fmt.Sprintf("AUTH_SUCCESS token=%d bytes", len(r.Token))
	case *protocol.SchemaChangeEvent:
		return fmt.Sprintf("EVENT schema_change %s %s.%s", r.Change, r.Keyspace, r.Table)
	case *protocol.StatusChangeEvent:
		return fmt.Sprintf("EVENT status_change %s %s:%d", r.Change, r.Address, r.Port)
	case *protocol.TopologyChangeEvent:
		return fmt.Sprintf("EVENT topology_change %s %s:%d", r.Change, r.Address, r.Port)
	default:
		return fmt.Sprintf("%T", resp)
	}
}
