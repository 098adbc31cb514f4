package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rtsai123/monad/eventring"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// newTestCmd returns a cobra.Command whose output is captured in buf,
// standing in for the cmd each RunE function normally receives from
// cobra's own dispatch.
func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestRunInit_CreatesInitializedRing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.bin")

	initPath = path
	initName = "init-test"
	initDescriptorShift = eventring.MinDescriptorsShift
	initPayloadShift = eventring.MinPayloadBufShift
	initContextPages = 0
	initContentType = uint16(eventring.ContentTypeTest)
	initSchemaTag = "commands-test-schema"

	cmd, out := newTestCmd()
	require.NoError(t, runInit(cmd, nil))
	require.Contains(t, out.String(), "initialized")
	require.Contains(t, out.String(), path)
}

func TestRunInit_RejectsBadShift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.bin")

	initPath = path
	initName = "bad-shift"
	initDescriptorShift = eventring.MinDescriptorsShift - 1
	initPayloadShift = eventring.MinPayloadBufShift
	initContextPages = 0
	initContentType = uint16(eventring.ContentTypeTest)
	initSchemaTag = ""

	cmd, _ := newTestCmd()
	err := runInit(cmd, nil)
	require.Error(t, err)
}

func TestRunInspect_ReportsControlBlockState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.bin")

	initPath = path
	initName = "inspect-test"
	initDescriptorShift = eventring.MinDescriptorsShift
	initPayloadShift = eventring.MinPayloadBufShift
	initContextPages = 0
	initContentType = uint16(eventring.ContentTypeTest)
	initSchemaTag = "inspect-schema"

	initCmd, _ := newTestCmd()
	require.NoError(t, runInit(initCmd, nil))

	inspectPath = path
	inspectName = "inspect-test"
	cmd, out := newTestCmd()
	require.NoError(t, runInspect(cmd, nil))

	got := out.String()
	require.Contains(t, got, "descriptor_capacity:")
	require.Contains(t, got, "last_seqno:           0")
	require.Contains(t, got, "next_payload_byte:    0")
}

func TestRunInspect_FailsOnMissingFile(t *testing.T) {
	inspectPath = filepath.Join(t.TempDir(), "does-not-exist.bin")
	inspectName = "missing"
	cmd, _ := newTestCmd()
	require.Error(t, runInspect(cmd, nil))
}

func TestRunRecord_PublishesRequestedCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.bin")

	initPath = path
	initName = "record-test"
	initDescriptorShift = eventring.MinDescriptorsShift
	initPayloadShift = eventring.MinPayloadBufShift
	initContextPages = 0
	initContentType = uint16(eventring.ContentTypeTest)
	initSchemaTag = "record-schema"

	initCmd, _ := newTestCmd()
	require.NoError(t, runInit(initCmd, nil))

	recordPath = path
	recordName = "record-test"
	recordCount = 5
	recordPayload = 32
	recordInterval = 0
	recordEventType = 7
	recordMetricsURL = ""

	cmd, out := newTestCmd()
	require.NoError(t, runRecord(cmd, nil))
	require.Contains(t, out.String(), "recorded 5 events")
}

func TestRunRecord_RejectsReservedEventType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.bin")

	initPath = path
	initName = "reserved-test"
	initDescriptorShift = eventring.MinDescriptorsShift
	initPayloadShift = eventring.MinPayloadBufShift
	initContextPages = 0
	initContentType = uint16(eventring.ContentTypeTest)
	initSchemaTag = ""

	initCmd, _ := newTestCmd()
	require.NoError(t, runInit(initCmd, nil))

	recordPath = path
	recordName = "reserved-test"
	recordCount = 1
	recordPayload = 16
	recordInterval = 0
	recordEventType = eventring.EventTypeRecordError
	recordMetricsURL = ""

	cmd, _ := newTestCmd()
	err := runRecord(cmd, nil)
	require.Error(t, err)
}

func TestRunTail_ReportsRecordedEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.bin")

	initPath = path
	initName = "tail-test"
	initDescriptorShift = eventring.MinDescriptorsShift
	initPayloadShift = eventring.MinPayloadBufShift
	initContextPages = 0
	initContentType = uint16(eventring.ContentTypeTest)
	initSchemaTag = ""

	initCmd, _ := newTestCmd()
	require.NoError(t, runInit(initCmd, nil))

	recordPath = path
	recordName = "tail-test"
	recordCount = 3
	recordPayload = 16
	recordInterval = 0
	recordEventType = 9
	recordMetricsURL = ""
	recCmd, _ := newTestCmd()
	require.NoError(t, runRecord(recCmd, nil))

	tailPath = path
	tailName = "tail-test"
	tailFromStart = true
	tailBackBy = 0
	tailPollInterval = 0
	tailMax = 3
	tailMetricsURL = ""

	cmd, out := newTestCmd()
	require.NoError(t, runTail(cmd, nil))
	require.Contains(t, out.String(), "type=9")
}
