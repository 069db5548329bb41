// Package provider defines the neutral operation types exchanged between the
// public client and a wire-level provider implementation, plus the error
// shape every failure is expressed in.
package provider

// Client is the full multimodal surface a wire provider implements.
type Client interface {
	VisionProvider
	ImageProvider
	TranscriptionProvider
	SpeechProvider
}
