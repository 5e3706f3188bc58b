// canary
// (C) 2024, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/caas-team/canary/internal/logger"
	"github.com/caas-team/canary/pkg/checks"
)

func newDocument() openapi3.T {
	return openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "Canary API",
			Description: "Serves the latest results of the deployment canaries",
			Version:     "v1",
		},
		Paths:      make(openapi3.Paths),
		Extensions: make(map[string]any),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
		Servers: openapi3.Servers{},
	}
}

// GenerateCanarySpecs generates the OpenAPI document of the result routes of the given canaries
func GenerateCanarySpecs(ctx context.Context, canaries []string) (openapi3.T, error) {
	log := logger.FromContext(ctx)
	doc := newDocument()

	ref, err := checks.OpenapiFromResult()
	if err != nil {
		log.ErrorContext(ctx, "Failed to get schema of canary result", "error", err)
		return openapi3.T{}, &ErrCreateOpenapiSchema{err: err}
	}
	doc.Components.Schemas["Result"] = ref
	list := openapi3.NewObjectSchema().WithAdditionalProperties(ref.Value)

	listDesc := "Latest results of all canaries"
	doc.Paths["/v1/canaries"] = &openapi3.PathItem{
		Description: "canaries",
		Get: &openapi3.Operation{
			Description: listDesc,
			Tags:        []string{"Canaries"},
			Responses: openapi3.Responses{
				fmt.Sprint(http.StatusOK): &openapi3.ResponseRef{
					Value: &openapi3.Response{
						Description: &listDesc,
						Content:     openapi3.NewContentWithJSONSchema(list),
					},
				},
			},
		},
	}

	for _, name := range canaries {
		getDesc := fmt.Sprintf("Returns the latest result of canary %s", name)
		runDesc := fmt.Sprintf("Runs canary %s and returns its result", name)
		doc.Paths["/v1/canaries/"+name] = &openapi3.PathItem{
			Description: name,
			Get: &openapi3.Operation{
				Description: getDesc,
				Tags:        []string{"Canaries", name},
				Responses: openapi3.Responses{
					fmt.Sprint(http.StatusOK): &openapi3.ResponseRef{
						Value: &openapi3.Response{
							Description: &getDesc,
							Content:     openapi3.NewContentWithSchemaRef(ref, []string{"application/json"}),
						},
					},
				},
			},
		}
		doc.Paths["/v1/canaries/"+name+"/run"] = &openapi3.PathItem{
			Description: name,
			Post: &openapi3.Operation{
				Description: runDesc,
				Tags:        []string{"Canaries", name},
				Responses: openapi3.Responses{
					fmt.Sprint(http.StatusOK): &openapi3.ResponseRef{
						Value: &openapi3.Response{
							Description: &runDesc,
							Content:     openapi3.NewContentWithSchemaRef(ref, []string{"application/json"}),
						},
					},
				},
			},
		}
	}

	return doc, nil
}
