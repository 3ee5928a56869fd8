// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport errors as transient or
// non-transient. Retry strategies use it to decide whether an attempt
// which failed without producing an HTTP response is worth repeating;
// it is equally handy for bucketing error metrics.
//
// Package transient depends only on the standard library.
package transient
