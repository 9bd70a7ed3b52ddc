package badger

import log "github.com/cihub/seelog"

// seelogBridge adapts the store's logger callbacks onto seelog. Errors and
// warnings keep their level so a sick store stays visible, info is
// compaction chatter and goes to debug.
type seelogBridge struct{}

func (l *seelogBridge) Errorf(format string, args ...interface{}) {
	log.Errorf("[badger] "+format, args...)
}

func (l *seelogBridge) Warningf(format string, args ...interface{}) {
	log.Warnf("[badger] "+format, args...)
}

func (l *seelogBridge) Infof(format string, args ...interface{}) {
	log.Debugf("[badger] "+format, args...)
}

func (l *seelogBridge) Debugf(format string, args ...interface{}) {
	log.Debugf("[badger] "+format, args...)
}
