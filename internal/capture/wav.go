package capture

import (
	"encoding/binary"
	"time"
)

const wavHeaderSize = 44

// EncodeWAV wraps raw s16le PCM in a RIFF/WAVE container.
func EncodeWAV(pcm []byte, sampleRate, channels uint32) []byte {
	const bitsPerSample = 16
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	buf := make([]byte, wavHeaderSize+len(pcm))
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+len(pcm)))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // PCM chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], sampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], byteRate)
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(len(pcm)))
	copy(buf[wavHeaderSize:], pcm)
	return buf
}

// PCMDuration reports how long n bytes of s16le PCM play for.
func PCMDuration(n int, sampleRate, channels uint32) time.Duration {
	if sampleRate == 0 || channels == 0 {
		return 0
	}
	frames := n / int(2*channels)
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
