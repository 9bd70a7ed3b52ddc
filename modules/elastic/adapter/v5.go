/*
Copyright Medcl (m AT medcl.net)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

   http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package adapter

// ESAPIV5 drives 5.x clusters. The task management api landed in 5.0, so
// this is the oldest release where the submit-and-poll copy mode works, the
// base surface covers everything else unchanged.
type ESAPIV5 struct {
	ESAPIV0
}
