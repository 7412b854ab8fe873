/*
go-deepscores converts the DeepScores dataset's per-image pixel segmentation
masks and XML object lists into COCO style object detection annotations,
split into training and validation subsets.

Each object instance becomes one annotation record carrying an uncompressed
run-length encoded (RLE) segmentation mask, an absolute pixel bounding box,
category and image identifiers, and a unique id.  The output JSON files are
consumed by downstream detection training pipelines that expect the standard
COCO annotation shape.

See the deepscores2coco command under cmd for CLI usage.
*/
package deepscores
