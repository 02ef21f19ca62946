// Package ocr reads the text inside detected bubbles with Tesseract.
//
// Tesseract and the trained data for each language must be installed on the
// system (for example apt-get install tesseract-ocr tesseract-ocr-eng, or
// tesseract-ocr-jpn for Japanese pages). The package links against
// libtesseract through gosseract/v2, so building it requires cgo.
//
// # Preprocessing
//
// Bubble crops are small and often low contrast. Before recognition each
// region is cropped, converted to grayscale, contrast-boosted and upscaled
// with bild. Preprocess is exported so the effect can be inspected without
// Tesseract.
//
// # Coordinates
//
// Regions are given in the coordinates of the source image. Each Transcript
// reports the region it was read from, clipped to the image bounds.
package ocr
