package logger

import (
	"log"
	"os"
)

// ProgressLogger logs the main steps of the style computation.
var ProgressLogger = log.New(os.Stdout, "cssengine.progress: ", log.LstdFlags)

// WarningLogger emits a warning for each non fatal error, like unsupported CSS
// properties, invalid declarations or circular custom property references.
var WarningLogger = log.New(os.Stdout, "cssengine.warning: ", log.Lmsgprefix)
