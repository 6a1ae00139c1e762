package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

var (
	InfoLog    = log.New(io.Discard, "INFO:", log.Ldate|log.Ltime|log.Lshortfile)
	WarningLog = log.New(io.Discard, "WARNING:", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog   = log.New(io.Discard, "ERROR:", log.Ldate|log.Ltime|log.Lshortfile)
)

var logFileName = filepath.Join(os.TempDir(), "mdviewer.log")

var globalLogFile *os.File

// Initialize should be called once at the beginning of the program to set up logging.
// defer Close() after calling this function. It sets the go log output to the file in
// the os temp directory.
func Initialize(verbose bool) {
	f, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		panic(fmt.Sprintf("could not open log file: %s", err))
	}

	// Set log format to include timestamp and file/line number
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var out io.Writer = f
	if verbose {
		out = io.MultiWriter(f, os.Stderr)
	}

	InfoLog = log.New(out, "INFO:", log.Ldate|log.Ltime|log.Lshortfile)
	WarningLog = log.New(out, "WARNING:", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(out, "ERROR:", log.Ldate|log.Ltime|log.Lshortfile)

	globalLogFile = f
}

// Close closes the log file and tells the user where to find it.
func Close() {
	if globalLogFile == nil {
		return
	}
	_ = globalLogFile.Close()
	globalLogFile = nil
	fmt.Fprintln(os.Stderr, "wrote logs to "+logFileName)
}

// FileName returns the path of the log file.
func FileName() string {
	return logFileName
}
