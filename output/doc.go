// SPDX-License-Identifier: EPL-2.0

// Package output connects a Renderer, usually a *mixer.Mixer, to
// something that consumes samples.
//
// Three devices are available by name through New:
//
//   - "oto" plays through github.com/ebitengine/oto/v3. Oto allows one
//     context per process, so every oto device must share a format.
//   - "portaudio" opens the default PortAudio output stream and mixes
//     straight from its callback.
//   - "null" renders at real-time pace and discards the result.
//
// RenderWAV drives a Renderer offline and writes a WAV file.
package output
