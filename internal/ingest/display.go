package ingest

import (
	"fmt"
	"io"

	"github.com/daqforge/serialmail-logger/internal/adc"
	"github.com/daqforge/serialmail-logger/internal/sink"
)

// printRecord renders one record in the block format operators are used to
// seeing on the console.
func printRecord(w io.Writer, rec *sink.Record) {
	fmt.Fprintf(w, "\nReceived SerialMail:\n")
	fmt.Fprintf(w, "Node:%d\n", rec.Node)
	printChannel(w, 0, rec.Ch0)
	printChannel(w, 1, rec.Ch1)
}

func printChannel(w io.Writer, channel int, readings []adc.Reading) {
	fmt.Fprintf(w, "RawInputBytesCh%d (%d):\n", channel, len(readings))
	for i, r := range readings {
		fmt.Fprintf(w, "  Input %d: (%d, %d, %d)\n", i, r.Sample.Data0, r.Sample.Data1, r.Sample.Data2)
	}

	fmt.Fprintf(w, "InputVoltagesCh%d (%d):\n", channel, len(readings))
	for i, r := range readings {
		fmt.Fprintf(w, "  InputVoltage %d: %.3f\n", i+1, r.VoltageMV)
	}
}
