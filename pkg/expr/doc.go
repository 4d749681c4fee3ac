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

// Package expr parses and evaluates rendered expressions.
//
// The grammar covers everything the renderer produces, for both the full
// and the simple form:
//
//	expr    := term (("+" | "-") term)*
//	term    := power (("*" | "/") power)*
//	power   := postfix ("^" power)?
//	postfix := prefix "!"*
//	prefix  := "√" prefix | primary
//	primary := number | "(" expr ")"
//
// Evaluation applies the same domain rules as the operation catalog, so an
// expression that Eval accepts is one the search could have produced.
// Check is used by the verify command and by the engine tests.
package expr
