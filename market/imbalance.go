package market

// CalculateImbalance calculates the imbalance between bid and ask volumes
// Imbalance = (BidVol - AskVol) / (BidVol + AskVol)
func CalculateImbalance(bidVolumeTop float64, askVolumeTop float64) float64 {
	totalVolume := bidVolumeTop + askVolumeTop
	if totalVolume == 0 {
		return 0
	}
	return (bidVolumeTop - askVolumeTop) / totalVolume
}

// SnapshotImbalance calculates imbalance over the top levels of a snapshot.
func SnapshotImbalance(snap BookSnapshot, levels int) float64 {
	if levels <= 0 {
		return 0
	}
	return CalculateImbalance(sideVolume(snap.Bids, levels), sideVolume(snap.Asks, levels))
}

func sideVolume(side []Level, levels int) float64 {
	vol := 0.0
	for i, lvl := range side {
		if i >= levels {
			break
		}
		size, _ := lvl.Size.Float64()
		vol += size
	}
	return vol
}
