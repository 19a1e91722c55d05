package sqp

import (
	"flag"
	"fmt"

	"k8s.io/klog/v2"
)

// Journal renders the iteration log spec.md §2's journaling component
// names, gated by the larger of PrintLevel/FilePrintLevel: Header and Row
// log at level ≥ 1, Debugf at level ≥ 2 - grounded in the
// kubeadm/kube-apiserver use of klog.InitFlags + a -log_file target in the
// retrieval pack.
type Journal struct {
	printLevel     int
	filePrintLevel int
}

// NewJournal configures klog's flag-driven file output (when outputFile
// is non-empty) and returns a Journal gated by the larger of printLevel
// and filePrintLevel (spec.md §6's print_level/file_print_level options);
// console and file output share that one gate.
func NewJournal(printLevel, filePrintLevel int, outputFile string) *Journal {
	if outputFile != "" {
		fs := flag.NewFlagSet("sqp-journal", flag.ContinueOnError)
		klog.InitFlags(fs)
		_ = fs.Set("log_file", outputFile)
		_ = fs.Set("logtostderr", "false")
		_ = fs.Set("alsologtostderr", "true")
	}
	return &Journal{printLevel: printLevel, filePrintLevel: filePrintLevel}
}

func (j *Journal) level() int {
	if j.filePrintLevel > j.printLevel {
		return j.filePrintLevel
	}
	return j.printLevel
}

// Header logs the column header row for the per-iteration table.
func (j *Journal) Header() {
	if j.level() <= 0 {
		return
	}
	klog.Info("iter        f(x)        infeas         delta      penalty   exit")
}

// Row logs one outer-iteration summary line.
func (j *Journal) Row(iter int, obj, infea, delta, penalty float64, exit ExitFlag) {
	if j.level() <= 0 {
		return
	}
	klog.Infof("%4d  %12.6e  %12.6e  %12.6e  %12.6e  %s", iter, obj, infea, delta, penalty, exit)
}

// Debugf logs a verbose diagnostic line, gated one level higher than Row.
func (j *Journal) Debugf(format string, args ...any) {
	if j.level() <= 1 {
		return
	}
	klog.Info(fmt.Sprintf(format, args...))
}

// Close flushes any buffered klog output. Safe to call multiple times.
func (j *Journal) Close() {
	klog.Flush()
}
