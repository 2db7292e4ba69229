package hibf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Pack file markers.
const (
	headerPrefix       = "#"
	configPrefix       = "##"
	highLevelPrefix    = "#HIGH_LEVEL_IBF"
	mergedBinPrefix    = "#MERGED_BIN_"
	columnHeaderPrefix = "#FILES"
	maxBinIDKey        = "max_bin_id:"
)

// ReadPackFile parses the pack file at path.
func ReadPackFile(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadPackFileFrom(f)
}

// ReadPackFileFrom parses a pack file. Header and user bin lines may be
// interleaved; both sequences keep their order of appearance.
//
// The format is line oriented and tab separated:
//
//	##<config line>                          ignored
//	#HIGH_LEVEL_IBF max_bin_id:<n>
//	#MERGED_BIN_<p1;p2;...> max_bin_id:<n>
//	#FILES	BIN_INDICES	NUMBER_OF_BINS       ignored
//	<f1;f2;...>	<p1;p2;...>	<count>
func ReadPackFileFrom(r io.Reader) (*Layout, error) {
	l := &Layout{TopLevelMaxBin: NoSlot}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if err := parseLine(l, line); err != nil {
			return nil, &ParseError{Line: lineNo, Text: line, cause: err}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return l, nil
}

func parseLine(l *Layout, line string) error {
	switch {
	case strings.HasPrefix(line, configPrefix), strings.HasPrefix(line, columnHeaderPrefix):
		return nil
	case strings.HasPrefix(line, highLevelPrefix):
		maxID, err := parseMaxBinID(strings.TrimPrefix(line, highLevelPrefix))
		if err != nil {
			return err
		}
		l.TopLevelMaxBin = maxID
		return nil
	case strings.HasPrefix(line, mergedBinPrefix):
		rest := strings.TrimPrefix(line, mergedBinPrefix)
		pathField, idField, ok := strings.Cut(rest, " ")
		if !ok {
			// Some writers separate the max bin id with a tab.
			pathField, idField, ok = strings.Cut(rest, "\t")
		}
		if !ok {
			return fmt.Errorf("%w: merged bin header without %s", ErrMalformedRecord, maxBinIDKey)
		}
		path, err := parsePath(pathField)
		if err != nil {
			return err
		}
		maxID, err := parseMaxBinID(idField)
		if err != nil {
			return err
		}
		l.MaxBins = append(l.MaxBins, MaxBin{Path: path, MaxSlot: maxID})
		return nil
	case strings.HasPrefix(line, headerPrefix):
		return fmt.Errorf("%w: unknown header", ErrMalformedRecord)
	}

	fields := strings.Split(line, "\t")
	if len(fields) != 3 {
		return fmt.Errorf("%w: want 3 tab separated fields, got %d", ErrMalformedRecord, len(fields))
	}

	files := strings.Split(fields[0], ";")
	for _, f := range files {
		if f == "" {
			return fmt.Errorf("%w: empty file name", ErrMalformedRecord)
		}
	}
	path, err := parsePath(fields[1])
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil || count < 1 {
		return fmt.Errorf("%w: bad number of bins %q", ErrMalformedRecord, fields[2])
	}

	l.UserBins = append(l.UserBins, UserBin{
		Files:     files,
		Path:      path,
		SlotCount: count,
		Index:     len(l.UserBins),
		ID:        -1,
	})
	return nil
}

func parseMaxBinID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, maxBinIDKey) {
		return 0, fmt.Errorf("%w: missing %s", ErrMalformedRecord, maxBinIDKey)
	}
	id, err := strconv.Atoi(strings.TrimPrefix(s, maxBinIDKey))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: bad max bin id %q", ErrMalformedRecord, s)
	}
	return id, nil
}

func parsePath(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty bin indices", ErrMalformedRecord)
	}
	parts := strings.Split(s, ";")
	path := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: bad bin index %q", ErrMalformedRecord, p)
		}
		path[i] = v
	}
	return path, nil
}
