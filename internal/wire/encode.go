package wire

import "strconv"

// AppendSimpleString appends a "+<text>\r\n" reply to dst and returns it.
func AppendSimpleString(dst []byte, text string) []byte {
	dst = append(dst, '+')
	dst = append(dst, text...)
	return append(dst, '\r', '\n')
}

// AppendError appends a "-<text>\r\n" reply to dst and returns it.
func AppendError(dst []byte, text string) []byte {
	dst = append(dst, '-')
	dst = append(dst, text...)
	return append(dst, '\r', '\n')
}

// AppendInteger appends a ":<decimal>\r\n" reply to dst and returns it.
func AppendInteger(dst []byte, n int64) []byte {
	dst = append(dst, ':')
	dst = strconv.AppendInt(dst, n, 10)
	return append(dst, '\r', '\n')
}

// AppendBulk appends a "$<len>\r\n<bytes>\r\n" reply to dst and returns it.
func AppendBulk(dst []byte, payload []byte) []byte {
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(payload)), 10)
	dst = append(dst, '\r', '\n')
	dst = append(dst, payload...)
	return append(dst, '\r', '\n')
}

// AppendNullBulk appends the null bulk reply "$-1\r\n" to dst and returns it.
func AppendNullBulk(dst []byte) []byte {
	return append(dst, '$', '-', '1', '\r', '\n')
}

// AppendArrayHeader appends "*<count>\r\n" to dst and returns it. The caller
// is responsible for appending exactly count further reply elements.
func AppendArrayHeader(dst []byte, count int) []byte {
	dst = append(dst, '*')
	dst = strconv.AppendInt(dst, int64(count), 10)
	return append(dst, '\r', '\n')
}
