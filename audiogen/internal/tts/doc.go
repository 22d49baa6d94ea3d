// Package tts synthesizes speech through the Azure Speech REST API.
//
// Synthesis is a two-step exchange: a short-lived bearer token is issued from
// the subscription key, then SSML is posted to the synthesis endpoint with
// the MP3 output format requested. Auth and quota failures are surfaced as
// distinct errors so the pipeline can tell a bad key from a throttled one.
package tts
