/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package logger

import (
	"fmt"
)

// ConsoleWriter sends log output to stdout.
type ConsoleWriter struct {
}

func NewConsoleWriter() (writer *ConsoleWriter, err error) {
	newWriter := new(ConsoleWriter)
	return newWriter, nil
}

func (console *ConsoleWriter) Write(bytes []byte) (int, error) {
	return fmt.Print(string(bytes))
}

func (console *ConsoleWriter) String() string {
	return "console writer"
}
