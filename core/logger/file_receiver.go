/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package logger

import (
	"io"

	log "github.com/cihub/seelog"
)

// FileReceiver forwards formatted records to one writer, the console or the
// rotating log file. It implements seelog.CustomReceiver so both targets
// hang off the same dispatcher.
type FileReceiver struct {
	writer      io.Writer
	minLogLevel log.LogLevel
}

func NewFileReceiver(writer io.Writer, minLogLevel log.LogLevel) *FileReceiver {
	return &FileReceiver{
		writer:      writer,
		minLogLevel: minLogLevel,
	}
}

// ReceiveMessage drops records below the configured level, everything else
// goes to the writer as-is.
func (ar *FileReceiver) ReceiveMessage(message string, level log.LogLevel, context log.LogContextInterface) error {
	if level < ar.minLogLevel {
		return nil
	}
	if ar.writer != nil {
		_, err := ar.writer.Write([]byte(message))
		return err
	}
	return nil
}

func (ar *FileReceiver) AfterParse(initArgs log.CustomReceiverInitArgs) error {
	return nil
}

func (ar *FileReceiver) Flush() {
}

// Close closes the writer when it can be closed, the rotating file handler
// takes care of its own lifecycle.
func (ar *FileReceiver) Close() error {
	if ar.writer != nil {
		if wc, ok := ar.writer.(io.WriteCloser); ok {
			return wc.Close()
		}
	}
	return nil
}
