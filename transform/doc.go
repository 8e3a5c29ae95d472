// Package transform implements the reversible conditioning transforms for
// floating-point volumes.
//
// Every forward transform fills an empty meta.Blob with a self-describing
// metadata blob. The matching inverse needs only that blob and the
// transformed data:
//
//   - SmartLog / SmartExp: natural logarithm of magnitudes, with sign and
//     exact-zero masks.
//   - SliceNorm / InvSliceNorm: per-group zero mean and unit RMS over a 3D
//     volume, grouped by fast-axis column (default) or slow-axis slice.
//   - BitmaskZero / InvBitmaskZero: near-zero elision into a bitmask plus the
//     remaining values.
//
// All functions are generic over float32 and float64 element types. Large
// buffers are split into strides processed on a shared worker pool; results
// do not depend on the number of strides. Options control the parallelism,
// the sparse threshold, the normalization granularity and debug logging.
//
// Example:
//
//	var m meta.Blob
//	if err := transform.SmartLog(values, &m); err != nil {
//	    return err
//	}
//	// ... compress values, persist m.Bytes() ...
//	if err := transform.SmartExp(values, m.Bytes()); err != nil {
//	    return err
//	}
package transform
