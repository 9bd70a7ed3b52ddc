package util

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	log "github.com/cihub/seelog"
)

var locked bool
var file string

// CheckInstanceLock refuses to start when another process already holds the
// data directory, two concurrent runs would fight over the journal. The
// lock file records the owning pid.
func CheckInstanceLock(p string) {
	file = path.Join(p, ".lock")
	if FileExists(file) {
		owner, _ := FileGetContent(file)
		log.Errorf("lock file %s exists, an instance (pid %v) may still be running, remove the file if it is not", file, TrimSpaces(string(owner)))
		log.Flush()
		os.Exit(1)
	}
	FilePutContent(file, IntToString(os.Getpid()))
	log.Trace("lock placed,", file, " ,pid:", os.Getpid())
	locked = true
	p, _ = filepath.Abs(p)
	log.Info("workspace: ", p)
}

// ClearInstanceLock removes the lock placed by this process.
func ClearInstanceLock() {
	if locked {
		err := os.Remove(file)
		if err != nil {
			fmt.Println(err)
		}
	}
}
