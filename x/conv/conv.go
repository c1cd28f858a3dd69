package conv

// Utoa writes the base-10 representation of n into the tail of buf and
// returns the used slice. buf should be length >= 20 for uint64.
func Utoa(buf []byte, n uint64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	} else {
		for n > 0 && i > 0 {
			i--
			buf[i] = byte('0' + (n % 10))
			n /= 10
		}
	}
	return buf[i:]
}

// AppendInt appends the base-10 form of n to dst. No fmt/strconv; the
// scratch buffer stays on the stack.
func AppendInt(dst []byte, n int64) []byte {
	var scratch [20]byte
	if n < 0 {
		dst = append(dst, '-')
		return append(dst, Utoa(scratch[:], uint64(-n))...)
	}
	return append(dst, Utoa(scratch[:], uint64(n))...)
}
