// Copyright 2025 InterviewKit
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


// Package badger implements storage.VectorStore on an embedded BadgerDB.
//
// Entries are stored under generation-prefixed keys and a single pointer
// key names the live generation. Committing a staging generation writes the
// pointer in one transaction, which is what makes the rebuild swap atomic
// for concurrent readers: BadgerDB's snapshot isolation means any query
// transaction sees a consistent pointer plus entry set.
//
// Similarity search is a full scan over the live generation. The corpus is
// hundreds to low thousands of documents, so a scan beats maintaining an
// approximate index; see storage/qdrant for the remote alternative.
package badger
