// darc-decode decodes a demodulated DARC bitstream (one byte per bit) into
// layer 4 data groups, printing one line per group.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	darc "github.com/soltia48/godarc"
	"github.com/soltia48/godarc/l4"
)

// logLevels maps the log level names of the command line onto logger levels.
// NOTSET enables everything.
var logLevels = map[string]log.Level{
	"NOTSET":   log.DebugLevel,
	"DEBUG":    log.DebugLevel,
	"INFO":     log.InfoLevel,
	"WARNING":  log.WarnLevel,
	"ERROR":    log.ErrorLevel,
	"CRITICAL": log.FatalLevel,
}

func main() {
	loglevel := pflag.StringP("loglevel", "l", "WARNING", "Logging level (NOTSET, DEBUG, INFO, WARNING, ERROR or CRITICAL)")
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: darc-decode [OPTION]... INPUT")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Decode a DARC bitstream; INPUT is a byte-per-bit file, or - for stdin.")
		fmt.Fprintln(os.Stderr)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	level, ok := logLevels[*loglevel]
	if !ok {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", *loglevel)
		pflag.Usage()
		os.Exit(2)
	}
	log.SetLevel(level)

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}
	if err := decode(pflag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

// decode streams the input file through the decoding pipeline, printing every
// completed data group.
func decode(path string) error {
	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "open input")
		}
		defer f.Close()
		in = f
	}
	dec := darc.NewDecoder()
	if err := dec.DecodeStream(in, printGroup); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

// printGroup writes the one-line representation of a data group to stdout.
func printGroup(group l4.DataGroup) {
	switch g := group.(type) {
	case *l4.DataGroup1:
		fmt.Printf("is_crc_valid=%t service_id=%#x data_group_number=%#x start_of_heading=%#x data_group_link=%#x data_group_data=%x end_of_data_group=%#x crc=%#x\n",
			g.IsCRCValid(), uint8(g.ServiceID()), g.DataGroupNumber(), g.StartOfHeading(),
			g.DataGroupLink(), g.DataGroupData(), g.EndOfDataGroup(), g.CRC())
	case *l4.DataGroup2:
		crc := "None"
		if v, ok := g.CRC(); ok {
			crc = fmt.Sprintf("%#x", v)
		}
		fmt.Printf("is_crc_valid=%t service_id=%#x data_group_number=%#x segments_data=%x crc=%s\n",
			g.IsCRCValid(), uint8(g.ServiceID()), g.DataGroupNumber(), g.SegmentsData(), crc)
	}
}
