// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample-level building blocks of the engine.
//
//   - Format and the Source interface for interleaved float32 streams
//   - Decoder, Sniffer and a Registry keyed by file extension
//   - Resampler for sample rate conversion and pitch shifting
//   - ChannelMapper for up and down mixing
//   - Buffer, fully decoded sample data shared between players
//
// # Source Interface
//
//	type Source interface {
//	    Format() Format
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// Decoders and processors implement Source so they can be chained:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	stereo := audio.NewChannelMapper(src, 2)
//	resampled := audio.NewResampler(stereo, 48000)
//
// # Buffers
//
// ReadAll drains a Source into a Buffer in a target Format. A Buffer is
// immutable; any number of BufferReader values may walk it concurrently,
// each with its own start offset and loop flag. This is how one decoded
// sound backs many simultaneous voices without copying.
//
// # Pitch
//
// Resampler.SetSpeed scales the conversion step while streaming. A speed of
// 2 consumes the source twice as fast, raising pitch by an octave.
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0]. Intermediate processing may exceed
// that range; the mixer clips on output.
//
// # Error Handling
//
// ReadSamples returns io.EOF when no more data is available, possibly
// together with the final samples:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    process(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
