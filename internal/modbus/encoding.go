package modbus

import "encoding/binary"

// Register words travel big-endian on the wire, two bytes per word.

func packWords(values []uint16) []byte {
	data := make([]byte, 2*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint16(data[2*i:], v)
	}
	return data
}

func unpackWords(data []byte) []uint16 {
	values := make([]uint16, len(data)/2)
	for i := range values {
		values[i] = binary.BigEndian.Uint16(data[2*i:])
	}
	return values
}

// Coil states are packed LSB-first, eight per byte.

func packBits(values []bool) []byte {
	data := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v {
			data[i/8] |= 1 << (uint(i) % 8)
		}
	}
	return data
}

func unpackBits(data []byte, count uint16) []bool {
	values := make([]bool, count)
	for i := range values {
		values[i] = data[i/8]&(1<<(uint(i)%8)) != 0
	}
	return values
}
