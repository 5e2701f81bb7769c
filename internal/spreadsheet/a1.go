package spreadsheet

import "strconv"

// ColumnName converts a 0-based column index to its letters (0→A, 25→Z, 26→AA).
func ColumnName(col int) string {
	var buf [16]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// CellAddress converts 0-based (row, col) to A1 notation, e.g. (9, 27) → "AB10".
func CellAddress(row, col int) string {
	return ColumnName(col) + strconv.Itoa(row+1)
}
