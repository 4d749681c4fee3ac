// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package operation defines the catalog of arithmetic operations used to
// combine digit expressions.
//
// The catalog is fixed and ordered:
//
//	!     factorial       unary   operand <= 20
//	sqrt  square root     unary   perfect squares only
//	+     addition        binary
//	-     subtraction     binary  a > b
//	*     multiplication  binary
//	/     division        binary  exact only
//	^     exponentiation  binary  exponent <= 40, both operand orders
//
// Every result must be a strictly positive integer that fits an int64.
// An operand outside an operation's domain is reported with ok == false,
// never with an error:
//
//	set, err := operation.Parse([]string{"+", "sqrt", "!"})
//	for _, op := range set.Binary() {
//	    if v, ok := op.ApplyBinary(6, 3); ok {
//	        ...
//	    }
//	}
//
// Parse accepts the aliases x (*), ** (^), fact (!) and √ (sqrt).
package operation
