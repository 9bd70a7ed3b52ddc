package util

import (
	log "github.com/cihub/seelog"
)

const testLogConfig = `
<seelog type="sync" minlevel="info">
    <outputs formatid="main">
        <console />
    </outputs>
    <formats>
        <format id="main" format="%Date/%Time [%LEV] %Msg%n"/>
    </formats>
</seelog>
`

func init() {
	logger, err := log.LoggerFromConfigAsString(testLogConfig)
	if err != nil {
		panic(err)
	}
	log.ReplaceLogger(logger)
}
