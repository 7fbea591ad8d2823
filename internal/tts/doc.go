// Package tts is the text-to-speech collaborator.
//
// Acoustic synthesis happens client-side (Web Speech API); the server
// only attaches speech metadata to each AI reply so the client knows what
// to speak and roughly how long it will take.
package tts
