// Package ultralytics drives the Ultralytics YOLO command-line tool as the
// detector backend. Training and prediction both shell out to the configured
// command; prediction results are read back from the label files the tool
// writes with save_txt=True.
package ultralytics
