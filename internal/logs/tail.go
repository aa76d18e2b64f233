package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const pollInterval = 250 * time.Millisecond

// TailOptions controls Tail. A negative Offset returns the last Limit
// matching records; otherwise records after Offset are returned.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
	Filter Filter
}

// TailResult holds the matching records and the offset to resume from.
type TailResult struct {
	Records []Record
	Offset  int64
}

// Tail reads records from the log file at path. A missing file yields no
// records. With Follow set and nothing matching yet, it polls until a record
// arrives, Wait elapses or ctx is done.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}
	if opts.Wait < 0 {
		opts.Wait = 0
	}

	if opts.Offset < 0 {
		records, offset, err := readLast(path, opts.Limit, opts.Filter)
		if err != nil {
			return result, err
		}
		result = TailResult{Records: records, Offset: offset}
		if opts.Follow && opts.Wait > 0 && len(records) == 0 {
			return waitForRecords(ctx, path, offset, opts.Wait, opts.Filter)
		}
		return result, nil
	}

	offset := opts.Offset
	if offset > info.Size() {
		offset = info.Size()
	}
	records, newOffset, err := readForward(path, offset, opts.Filter)
	if err != nil {
		return result, err
	}
	if opts.Follow && opts.Wait > 0 && len(records) == 0 {
		return waitForRecords(ctx, path, newOffset, opts.Wait, opts.Filter)
	}
	return TailResult{Records: records, Offset: newOffset}, nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}

// readLast keeps the last limit matching records in a ring.
func readLast(path string, limit int, filter Filter) ([]Record, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, end, nil
	}

	ring := make([]Record, limit)
	count, idx := 0, 0
	var consumed int64
	scanner := newLineScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		consumed += int64(len(line)) + 1
		if line == "" {
			continue
		}
		rec := ParseRecord(line)
		if !filter.Match(rec) {
			continue
		}
		ring[idx] = rec
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	records := make([]Record, count)
	if count == limit {
		for i := range records {
			records[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(records, ring[:count])
	}
	return records, consumedOffset(file, consumed), nil
}

// consumedOffset clamps the scanned byte count to the file size; the last
// line may lack a trailing newline.
func consumedOffset(file *os.File, consumed int64) int64 {
	info, err := file.Stat()
	if err != nil || consumed <= info.Size() {
		return consumed
	}
	return info.Size()
}

func readForward(path string, offset int64, filter Filter) ([]Record, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	var records []Record
	consumed := offset
	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			// A partial line is left for the next call.
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		line = line[:len(line)-1]
		if line == "" {
			continue
		}
		if rec := ParseRecord(line); filter.Match(rec) {
			records = append(records, rec)
		}
	}
	return records, consumed, nil
}

func waitForRecords(ctx context.Context, path string, offset int64, wait time.Duration, filter Filter) (TailResult, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	result := TailResult{Offset: offset}
	for {
		records, newOffset, err := readForward(path, result.Offset, filter)
		if err != nil {
			return result, err
		}
		result.Offset = newOffset
		if len(records) > 0 {
			result.Records = records
			return result, nil
		}
		if time.Now().After(deadline) {
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}
