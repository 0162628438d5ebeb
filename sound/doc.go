// SPDX-License-Identifier: EPL-2.0

// Package sound finds sound files by resource name and turns them into
// decoded buffers ready for the mixer.
//
// Names are rooted at the resource directories, so "/sound.ogg" means
// sound.ogg inside the first directory that has it. Decoders are chosen by
// extension with a fallback to content sniffing.
//
// Decoded buffers are cached with github.com/patrickmn/go-cache, keyed by
// absolute path; Watch uses github.com/fsnotify/fsnotify to drop entries
// when their files change.
package sound
