package analysis

// ProgressReporter provides callbacks for reporting analysis progress.
// Implementations can display progress bars, log messages, or remain silent.
// Calls are serialized; implementations need no locking of their own.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files, manifests int)

	// OnFileProcessingStart is called before analyzing files.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each file is analyzed.
	OnFileProcessed(fileName string)

	// OnComplete is called when the run completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                        {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(files, manifests int) {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int)     {}
func (n *NoOpProgressReporter) OnFileProcessed(fileName string)          {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)                  {}
