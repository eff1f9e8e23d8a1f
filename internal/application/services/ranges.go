package services

// BlockRange is an inclusive range of block numbers
type BlockRange struct {
	From uint64
	To   uint64
}

// Len returns the number of blocks in the range
func (r BlockRange) Len() int {
	return int(r.To - r.From + 1)
}

// SplitBlockRange splits the inclusive range [fromBlock, toBlock] into batches
func SplitBlockRange(fromBlock, toBlock uint64, batchSize int) []BlockRange {
	if fromBlock > toBlock || batchSize <= 0 {
		return nil
	}

	var ranges []BlockRange
	for current := fromBlock; current <= toBlock; current += uint64(batchSize) {
		end := current + uint64(batchSize) - 1
		if end > toBlock || end < current {
			end = toBlock
		}
		ranges = append(ranges, BlockRange{From: current, To: end})
		if end == toBlock {
			break
		}
	}

	return ranges
}
