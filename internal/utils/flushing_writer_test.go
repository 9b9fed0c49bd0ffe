package utils_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gho/internal/utils"
)

const testFlushPayloadConstant = "clone progress line\n"

type flushRecordingWriter struct {
	buffer     bytes.Buffer
	flushCount int
}

func (writer *flushRecordingWriter) Write(data []byte) (int, error) {
	return writer.buffer.Write(data)
}

func (writer *flushRecordingWriter) Flush() error {
	writer.flushCount++
	return nil
}

func TestFlushingWriterFlushesAfterEachWrite(testInstance *testing.T) {
	recordingWriter := &flushRecordingWriter{}
	flushingWriter := utils.NewFlushingWriter(recordingWriter)

	bytesWritten, writeError := flushingWriter.Write([]byte(testFlushPayloadConstant))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, len(testFlushPayloadConstant), bytesWritten)
	require.Equal(testInstance, 1, recordingWriter.flushCount)
	require.Equal(testInstance, testFlushPayloadConstant, recordingWriter.buffer.String())
}

func TestFlushingWriterPassesThroughPlainWriters(testInstance *testing.T) {
	plainBuffer := &bytes.Buffer{}
	flushingWriter := utils.NewFlushingWriter(plainBuffer)

	_, writeError := flushingWriter.Write([]byte(testFlushPayloadConstant))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, testFlushPayloadConstant, plainBuffer.String())
}

func TestFlushingWriterAvoidsDoubleWrapping(testInstance *testing.T) {
	plainBuffer := &bytes.Buffer{}
	flushingWriter := utils.NewFlushingWriter(plainBuffer)
	require.Equal(testInstance, flushingWriter, utils.NewFlushingWriter(flushingWriter))
}

func TestFlushingWriterNilWriter(testInstance *testing.T) {
	require.Nil(testInstance, utils.NewFlushingWriter(nil))
}
