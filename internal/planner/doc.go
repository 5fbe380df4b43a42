// Package planner walks the CC_/CCC_ hierarchy of a scene and decides which
// GLB files to write and where.
//
// Rules:
//   - a Component (CC_) becomes one job in "<folder>/<name>_CC_id_<id>";
//     only its Container children are walked further
//   - a Container (CCC_) adds a folder and walks all its children
//   - Plain nodes are never jobs; under a Container they are orphans
//
// Ids must be assigned (scene.AssignIDs) before Build is called.
package planner
