package chess

// GetMaterialCount sums the standard values of the live pieces per side.
func (p *Position) GetMaterialCount() MaterialCount {
	var count MaterialCount
	for _, pc := range p.pieces {
		if !pc.Alive {
			continue
		}
		if pc.Color == White {
			count.White += StandardPieceValues[pc.Kind]
		} else {
			count.Black += StandardPieceValues[pc.Kind]
		}
	}
	return count
}

// GetMaterialBalance returns white material minus black material.
func (p *Position) GetMaterialBalance() int {
	count := p.GetMaterialCount()
	return count.White - count.Black
}

// GetPieceValues returns the piece values keyed by kind name.
func GetPieceValues() map[string]int {
	values := make(map[string]int, len(StandardPieceValues))
	for k, v := range StandardPieceValues {
		values[k.String()] = v
	}
	return values
}
