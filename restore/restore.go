// Package restore moves files out of a Windows Recycle Bin tree and
// back to their original locations.
//
// Windows deletes a file by renaming it to $R<random>.<ext> and
// writing a matching $I<random>.<ext> metadata record next to it. We
// walk the bin, decode every $I record and move the payload to the
// path recorded at deletion time, rebased under the restore target.
package restore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	recyclebin "www.velocidex.com/golang/recyclebin"
	"www.velocidex.com/golang/recyclebin/config"
	"www.velocidex.com/golang/recyclebin/constants"
	"www.velocidex.com/golang/recyclebin/logging"
	"www.velocidex.com/golang/recyclebin/utils"
)

// Options control a single restore run.
type Options struct {
	// Directory under which reconstructed paths are rebased. The
	// "." sentinel restores relative to the current directory.
	TargetDir string

	// Report what would happen without touching the filesystem.
	DryRun bool

	// Only restore files deleted at or after this time. The zero
	// time disables the filter.
	Since time.Time
}

// Stats summarise a restore run.
type Stats struct {
	// Pairs moved out of the bin (or that would move in dry run mode).
	Restored int

	// Metadata without a payload, or entries filtered by Since.
	Skipped int

	// Undecodable metadata, size mismatches and filesystem errors.
	Failed int

	// Total payload bytes moved.
	BytesMoved uint64
}

type Restorer struct {
	config_obj *config.Config
	options    Options

	converter *recyclebin.PathConverter
	logger    *logging.LogContext

	stats Stats
}

func New(config_obj *config.Config, options Options) (*Restorer, error) {
	converter, err := recyclebin.NewPathConverter(
		config_obj.GetFilesystemEncoding())
	if err != nil {
		return nil, err
	}

	if options.TargetDir == "" {
		options.TargetDir = "."
	}

	return &Restorer{
		config_obj: config_obj,
		options:    options,
		converter:  converter,
		logger:     logging.GetLogger(config_obj, &logging.RestoreComponent),
	}, nil
}

// Run walks the recycle bin tree rooted at bin_root and restores
// every complete metadata/payload pair. A bad entry is logged and
// counted but never aborts the walk - only an unlistable root is
// fatal.
func (self *Restorer) Run(bin_root string) (*Stats, error) {
	self.stats = Stats{}

	err := WalkMetadataFiles(self.config_obj, bin_root, self.restoreEntry)
	if err != nil {
		return nil, errors.Wrap(err, "While listing the recycle bin root")
	}

	stats := self.stats
	self.logSummary(&stats)
	return &stats, nil
}

// WalkMetadataFiles visits every regular file starting with $I below
// root, depth-first with siblings in sorted order. Entries that
// vanish between listing and lstat are skipped silently - the usual
// cause is a payload we just moved away. Returns an error only when
// the root itself can not be listed.
func WalkMetadataFiles(config_obj *config.Config, root string,
	visit func(ifile string)) error {

	logger := logging.GetLogger(config_obj, &logging.RestoreComponent)

	worklist := []string{root}
	for len(worklist) > 0 {
		dir := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		names, err := utils.ReadDirNames(dir)
		if err != nil {
			if dir == root {
				return err
			}
			logger.Warn("skipping unreadable directory %v: %v", dir, err)
			continue
		}

		sort.Strings(names)

		var subdirs []string
		for _, name := range names {
			full_path := filepath.Join(dir, name)

			stat, err := os.Lstat(full_path)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				logger.Warn("skipping %v: %v", full_path, err)
				continue
			}

			switch {
			case stat.IsDir():
				subdirs = append(subdirs, full_path)

			case stat.Mode().IsRegular() && constants.IsMetadataName(name):
				visit(full_path)
			}
		}

		// Directories pop in sorted order after the files in this
		// one are done.
		for i := len(subdirs) - 1; i >= 0; i-- {
			worklist = append(worklist, subdirs[i])
		}
	}

	return nil
}

func (self *Restorer) restoreEntry(ifile string) {
	// The payload sits next to the metadata with the $I prefix
	// replaced by $R.
	rfile := PayloadPath(ifile)

	payload_stat, err := os.Lstat(rfile)
	if err != nil {
		if os.IsNotExist(err) {
			// Orphaned metadata - the payload was already moved or
			// never existed. Not an error.
			self.logger.Debug("no payload for %v, skipping", ifile)
			self.stats.Skipped++
			return
		}
		self.logger.Warn("skipping %v: %v", ifile, err)
		self.stats.Failed++
		return
	}

	record, err := recyclebin.ParseFile(ifile, self.converter)
	if err != nil {
		self.logger.Warn("cannot decode %v: %v", ifile, err)
		self.stats.Failed++
		return
	}

	if payload_stat.Mode().IsRegular() &&
		payload_stat.Size() != int64(record.DeclaredSize) {
		self.logger.Warn(
			"file size mismatch, not moving %v (metadata says %v bytes, found %v)",
			rfile, record.DeclaredSize, payload_stat.Size())
		self.stats.Failed++
		return
	}

	if !self.options.Since.IsZero() &&
		record.DeletionTime.Before(self.options.Since) {
		self.logger.Debug("skipping %v deleted %v, before cutoff", ifile,
			utils.FormatTime(record.DeletionTime))
		self.stats.Skipped++
		return
	}

	destination := record.RestorePath()
	if self.options.TargetDir != "." {
		destination = filepath.Join(self.options.TargetDir, destination)
	}

	if self.options.DryRun {
		self.logger.Info("would move <green>%v</> to <green>%v</>",
			rfile, destination)
		self.stats.Restored++
		if payload_stat.Mode().IsRegular() {
			self.stats.BytesMoved += uint64(payload_stat.Size())
		}
		return
	}

	// Windows stamps the payload when it is deleted, so an mtime
	// newer than the recorded deletion time is rewound to it before
	// the move.
	if payload_stat.Mode().IsRegular() &&
		record.DeletionTime.Before(payload_stat.ModTime()) {
		err := os.Chtimes(rfile, utils.Atime(payload_stat), record.DeletionTime)
		if err != nil {
			self.logger.Error("cannot set deletion time on %v: %v", rfile, err)
			self.stats.Failed++
			return
		}
	}

	err = os.MkdirAll(filepath.Dir(destination), 0700)
	if err != nil {
		self.logger.Error("cannot create %v: %v",
			filepath.Dir(destination), err)
		self.stats.Failed++
		return
	}

	destination, err = resolveCollision(destination)
	if err != nil {
		self.logger.Error("cannot place %v: %v", destination, err)
		self.stats.Failed++
		return
	}

	self.logger.Info("moving from Recycle Bin: <green>%v</> to <green>%v</>",
		rfile, destination)

	err = utils.MoveFile(context.Background(), rfile, destination)
	if err != nil {
		self.logger.Error("cannot move %v to %v: %v", rfile, destination, err)
		self.stats.Failed++
		return
	}

	// Remove the metadata strictly after the payload landed. A crash
	// in between leaves an orphan $I which the next run skips as a
	// missing pair.
	err = os.Remove(ifile)
	if err != nil {
		self.logger.Error("cannot remove %v: %v", ifile, err)
		self.stats.Failed++
		return
	}

	self.stats.Restored++
	if payload_stat.Mode().IsRegular() {
		self.stats.BytesMoved += uint64(payload_stat.Size())
	}
}

// PayloadPath maps a metadata path to its sibling payload path:
// dir/$IKXV0R9.txt becomes dir/$RKXV0R9.txt.
func PayloadPath(ifile string) string {
	dir, name := filepath.Split(ifile)
	return filepath.Join(dir, constants.PayloadName(name))
}

func (self *Restorer) logSummary(stats *Stats) {
	mode := ""
	if self.options.DryRun {
		mode = " (dry run)"
	}
	self.logger.Info("restored %v files (%v)%v, skipped %v, failed %v",
		stats.Restored, humanize.Bytes(stats.BytesMoved), mode,
		stats.Skipped, stats.Failed)
}
